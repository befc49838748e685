package expand

import "strconv"

// Label returns the display text of an instance at signed slice offset snum:
// name_{suffix+offset}.
//
// In centered mode (non-empty suffix) the offset is empty at the anchor
// slice, "+n" after it and "-n" before it. In absolute mode the offset is the
// bare slice number.
func Label(name, suffix string, snum int) string {
	return name + "_{" + suffix + offsetText(suffix, snum) + "}"
}

func offsetText(suffix string, snum int) string {
	if suffix == "" {
		return strconv.Itoa(snum)
	}
	switch {
	case snum > 0:
		return "+" + strconv.Itoa(snum)
	case snum < 0:
		return strconv.Itoa(snum)
	default:
		return ""
	}
}
