package rod

// In-page functions. Element scripts run with this bound to the element.
const (
	jsConnected = `() => this.isConnected`

	jsOffsetSize = `() => [this.offsetWidth || 0, this.offsetHeight || 0]`

	jsClientRects = `() => Array.from(this.getClientRects(),
		r => ({x: r.x, y: r.y, width: r.width, height: r.height}))`

	// A declared transition with only zero durations never fires a
	// completion event, so it reads as no transition.
	jsComputedStyle = `(prop) => {
		const style = getComputedStyle(this);
		if (prop === 'transition') {
			const running = style.transitionDuration.split(',')
				.some(d => parseFloat(d) > 0);
			return running ? style.transition : '';
		}
		return style.getPropertyValue(prop);
	}`

	jsValue = `() => ('value' in this && this.value != null) ? String(this.value) : ''`

	jsSetDisplay = `(value) => { this.style.display = value; }`

	jsDisplay = `() => this.style.display || getComputedStyle(this).display`

	jsAddListener = `(event, id, binding) => {
		const handler = () => window[binding](id);
		this.__waypointListeners = this.__waypointListeners || {};
		this.__waypointListeners[id] = [event, handler];
		this.addEventListener(event, handler);
	}`

	jsRemoveListener = `(id) => {
		const entry = this.__waypointListeners && this.__waypointListeners[id];
		if (!entry) return;
		this.removeEventListener(entry[0], entry[1]);
		delete this.__waypointListeners[id];
	}`

	jsSupportsStyle = `(prop) => prop in this.style`

	jsSetText = `(text) => { this.textContent = text; }`
)

// Page functions.
const (
	jsCreateScratch = `() => document.createElement('div')`

	jsPaintButtons = `(barClass, prevClass, nextClass, captionClass) => {
		const bar = document.createElement('div');
		bar.className = barClass;
		bar.style.cssText = 'position:fixed;right:16px;bottom:16px;z-index:2147483647;' +
			'display:block;padding:8px;background:#fff;border:1px solid #888;' +
			'border-radius:6px;font:14px sans-serif;box-shadow:0 2px 8px rgba(0,0,0,.2)';
		const caption = document.createElement('span');
		caption.className = captionClass;
		caption.style.marginRight = '8px';
		const prev = document.createElement('button');
		prev.className = prevClass;
		prev.textContent = 'Back';
		const next = document.createElement('button');
		next.className = nextClass;
		next.textContent = 'Next';
		bar.append(caption, prev, next);
		document.body.appendChild(bar);
		return bar;
	}`
)
