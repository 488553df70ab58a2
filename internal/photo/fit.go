package photo

// FitToPage scales w×h down into the maxW×maxH box, keeping the aspect ratio.
// The width bound is applied first and the height is re-checked afterwards,
// so the result satisfies both bounds. Images already inside the box are
// returned unchanged.
func FitToPage(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	if w <= maxW && h <= maxH {
		return w, h
	}

	aspect := w / h
	newW, newH := w, h
	if newW > maxW {
		newW = maxW
		newH = newW / aspect
	}
	if newH > maxH {
		newH = maxH
		newW = newH * aspect
	}
	return newW, newH
}
