package scraper

import "fmt"

// The dashboards render inside a nested scrollable region, not the window.
// Candidate containers are ranked; the first whose content overflows its
// viewport wins, otherwise the window is scrolled.
const scrollProbeScript = `
(() => {
	const selectors = ['.mainBlock', '[class*="mainBlock"]', '[class*="report-content"]', 'main'];
	for (const sel of selectors) {
		const el = document.querySelector(sel);
		if (el && el.scrollHeight > el.clientHeight) {
			return { found: true, selector: sel, scrollHeight: el.scrollHeight, clientHeight: el.clientHeight };
		}
	}
	return { found: false, selector: '', scrollHeight: document.body.scrollHeight, clientHeight: window.innerHeight };
})()
`

const windowScrollTopScript = `window.scrollTo(0, 0); 0`

func scrollToScript(found bool, selector string, pos int) string {
	if !found {
		return fmt.Sprintf(`(() => { window.scrollTo(0, %d); return window.scrollY; })()`, pos)
	}
	return fmt.Sprintf(`
(() => {
	const container = document.querySelector(%q);
	if (!container) return 0;
	container.scrollTop = %d;
	return container.scrollTop;
})()`, selector, pos)
}

func scrollToBottomScript(found bool, selector string) string {
	if !found {
		return `(() => { window.scrollTo(0, document.body.scrollHeight); return window.scrollY; })()`
	}
	return fmt.Sprintf(`
(() => {
	const container = document.querySelector(%q);
	if (!container) return 0;
	container.scrollTop = container.scrollHeight;
	return container.scrollTop;
})()`, selector)
}

func scrollInfoScript(found bool, selector string) string {
	if !found {
		return `(() => ({ scrollTop: window.scrollY, scrollHeight: document.body.scrollHeight, clientHeight: window.innerHeight }))()`
	}
	return fmt.Sprintf(`
(() => {
	const container = document.querySelector(%q);
	if (!container) return { scrollTop: 0, scrollHeight: 0, clientHeight: 0 };
	return { scrollTop: container.scrollTop, scrollHeight: container.scrollHeight, clientHeight: container.clientHeight };
})()`, selector)
}

// Scorecard text must be read via innerText so that the label/value line
// break survives; a DOM text walk would glue them together.
const metricTextsScript = `
(() => {
	const selectors = [
		'[class*="scorecard"]',
		'[class*="metric"]',
		'[class*="kpi"]',
		'[data-test-id*="scorecard"]',
		'div[class*="compact-number"]',
		'div[class*="metric-value"]'
	];
	const out = [];
	for (const sel of selectors) {
		let els = [];
		try { els = document.querySelectorAll(sel); } catch (e) { continue; }
		for (const el of els) {
			const text = (el.innerText || '').trim();
			if (text) out.push(text);
		}
	}
	return out;
})()
`

const filtersScript = `
(() => {
	const selectors = ['[class*="filter"]', '[class*="control"]', 'select', 'input[type="date"]'];
	const out = [];
	const seen = new Set();
	for (const sel of selectors) {
		let els = [];
		try { els = document.querySelectorAll(sel); } catch (e) { continue; }
		for (const el of els) {
			if (seen.has(el)) continue;
			seen.add(el);
			const rect = el.getBoundingClientRect();
			if (rect.width === 0 || rect.height === 0) continue;
			const name = el.getAttribute('aria-label') || el.getAttribute('placeholder') || el.getAttribute('name') || '';
			const value = ((el.value !== undefined && el.value !== null ? String(el.value) : '') || el.innerText || '').trim();
			if (name || value) out.push({ name: name, value: value });
		}
	}
	return out;
})()
`

const dashboardTitleScript = `
(() => {
	const selectors = ['h1', '[class*="dashboard-title"]', '[class*="report-title"]'];
	for (const sel of selectors) {
		const el = document.querySelector(sel);
		if (el) {
			const text = (el.innerText || '').trim();
			if (text) return text;
		}
	}
	return '';
})()
`

// Navigation discovery scripts. Each strategy tags the elements it picks
// with a data-nav-idx attribute so the walker can click them later by a
// stable selector, and shares a page-global counter so indices never
// collide across strategies.
const navStateScript = `
	if (window.__navPicked === undefined) { window.__navPicked = new Set(); window.__navIdx = 0; }
	const visible = (el) => { const r = el.getBoundingClientRect(); return r.width > 0 && r.height > 0; };
	const pick = (el, out) => {
		if (window.__navPicked.has(el) || !visible(el)) return;
		const text = (el.innerText || '').trim();
		if (!text) return;
		window.__navPicked.add(el);
		el.setAttribute('data-nav-idx', String(window.__navIdx));
		out.push({ index: window.__navIdx, text: text });
		window.__navIdx++;
	};
`

const semanticNavScript = `
(() => {
` + navStateScript + `
	const selectors = [
		'[class*="canvas-page"]',
		'[class*="page-navigation"]',
		'[class*="page-list"] *',
		'[class*="page-item"]',
		'nav a',
		'nav button',
		'nav div[role="button"]',
		'button[role="tab"]',
		'[role="tab"]',
		'li[role="tab"]',
		'[class*="sidebar"] a',
		'[class*="sidebar"] button',
		'[class*="sidebar"] [role="button"]',
		'[class*="navigation"] button',
		'[class*="nav-item"]',
		'[class*="menu-item"]'
	];
	const out = [];
	for (const sel of selectors) {
		let els = [];
		try { els = document.querySelectorAll(sel); } catch (e) { continue; }
		for (const el of els) pick(el, out);
	}
	return out;
})()
`

// Numbered page indicators in some reports carry no semantic markup at
// all: short-text elements hugging the left margin are the only trace.
const leftMarginNavScript = `
(() => {
` + navStateScript + `
	const out = [];
	for (const el of document.querySelectorAll('body *')) {
		const r = el.getBoundingClientRect();
		const text = (el.innerText || '').trim();
		if (r.left < 100 && r.width < 100 && r.height > 15 && r.height < 80 &&
			text && text.length < 20 && !text.includes('keyboard')) {
			pick(el, out);
		}
	}
	return out;
})()
`

func navClickableScript(index int) string {
	return fmt.Sprintf(`
(() => {
	const el = document.querySelector('[data-nav-idx="%d"]');
	if (!el) return false;
	const rect = el.getBoundingClientRect();
	if (rect.width === 0 || rect.height === 0) return false;
	return !el.disabled;
})()`, index)
}

func navScrollIntoViewScript(index int) string {
	return fmt.Sprintf(`
(() => {
	const el = document.querySelector('[data-nav-idx="%d"]');
	if (el) el.scrollIntoView({ block: 'center' });
	return true;
})()`, index)
}

func navSelector(index int) string {
	return fmt.Sprintf(`[data-nav-idx="%d"]`, index)
}
