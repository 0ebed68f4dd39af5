package window

// Key is a keyboard key understood by the scroll bindings.
type Key int

const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyPageUp
	KeyPageDown
	KeySpace
	KeyHome
	KeyEnd
)

// KeyScroll maps a key press onto the scroll request a browser makes for it.
//
// Parameters:
//   - key: the pressed key
//   - shift: true when shift is held, which reverses the space bar
//
// Returns:
//   - ScrollEvent: the scroll request
//   - bool: false if the key does not scroll
func KeyScroll(key Key, shift bool) (ScrollEvent, bool) {
	switch key {
	case KeyUp:
		return ScrollEvent{Kind: ScrollLines, Amount: -1}, true
	case KeyDown:
		return ScrollEvent{Kind: ScrollLines, Amount: 1}, true
	case KeyPageUp:
		return ScrollEvent{Kind: ScrollPages, Amount: -1}, true
	case KeyPageDown:
		return ScrollEvent{Kind: ScrollPages, Amount: 1}, true
	case KeySpace:
		if shift {
			return ScrollEvent{Kind: ScrollPages, Amount: -1}, true
		}
		return ScrollEvent{Kind: ScrollPages, Amount: 1}, true
	case KeyHome:
		return ScrollEvent{Kind: ScrollTo, Amount: 0}, true
	case KeyEnd:
		return ScrollEvent{Kind: ScrollToEnd}, true
	default:
		return ScrollEvent{}, false
	}
}
