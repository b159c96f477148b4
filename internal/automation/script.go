package automation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// roleQueries maps ARIA roles to the elements that carry them implicitly.
var roleQueries = map[string]string{
	"textbox": `textarea, input:not([type]), input[type="text"], input[type="search"], input[type="email"], ` +
		`[role="textbox"], [contenteditable=""], [contenteditable="true"]`,
	"button":    `button, input[type="button"], input[type="submit"], [role="button"]`,
	"searchbox": `input[type="search"], [role="searchbox"]`,
}

const accessibleNameJS = `(el) => {
	const labelled = el.getAttribute('aria-labelledby');
	if (labelled) {
		const ref = document.getElementById(labelled);
		if (ref) return ref.textContent.trim();
	}
	const label = el.getAttribute('aria-label')
		|| (el.labels && el.labels.length ? el.labels[0].textContent : '')
		|| el.getAttribute('placeholder')
		|| el.getAttribute('title')
		|| '';
	return label.trim();
}`

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// candidatesJS returns a JS expression evaluating to the array of elements sel may refer to.
func candidatesJS(sel Selector) string {
	switch sel.Strategy {
	case ByPlaceholder:
		return fmt.Sprintf(`Array.from(document.querySelectorAll('[placeholder]')).filter((el) => el.getAttribute('placeholder') === %s)`,
			jsString(sel.Value))
	case ByRole:
		query, ok := roleQueries[strings.ToLower(sel.Value)]
		if !ok {
			query = fmt.Sprintf(`[role=%s]`, jsString(sel.Value))
		}
		return fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).filter((el) => %s === "" || (%s)(el) === %s)`,
			jsString(query), jsString(sel.Name), accessibleNameJS, jsString(sel.Name))
	default:
		return fmt.Sprintf(`Array.from(document.querySelectorAll(%s))`, jsString(sel.Value))
	}
}

// finderJS returns a JS expression evaluating to the first element sel
// resolves to, or null.
func finderJS(sel Selector) string {
	return fmt.Sprintf(`(() => {
	const exclude = %s;
	const keep = (el) => !exclude || !(el.matches(exclude) || el.querySelector(exclude));
	return %s.find(keep) || null;
})()`, jsString(sel.Exclude), candidatesJS(sel))
}

func readTextJS(finder string) string {
	return fmt.Sprintf(`(() => {
	const el = %s;
	if (!el) return {found: false, text: ""};
	const text = (el.tagName === 'TEXTAREA' || el.tagName === 'INPUT') ? el.value : el.textContent;
	return {found: true, text: text || ""};
})()`, finder)
}

// setValueJS replaces the element's content through the native value setter
// so framework-managed inputs observe the change, then fires input and change.
func setValueJS(finder, text string) string {
	return fmt.Sprintf(`(() => {
	const el = %s;
	if (!el) return false;
	el.focus();
	const text = %s;
	if (el.tagName === 'TEXTAREA' || el.tagName === 'INPUT') {
		const desc = Object.getOwnPropertyDescriptor(Object.getPrototypeOf(el), 'value');
		if (desc && desc.set) {
			desc.set.call(el, text);
		} else {
			el.value = text;
		}
	} else {
		el.textContent = text;
	}
	el.dispatchEvent(new Event('input', {bubbles: true}));
	el.dispatchEvent(new Event('change', {bubbles: true}));
	return true;
})()`, finder, jsString(text))
}

// focusEndJS focuses the element and moves the caret to the end of its content.
func focusEndJS(finder string) string {
	return fmt.Sprintf(`(() => {
	const el = %s;
	if (!el) return false;
	el.focus();
	if (typeof el.setSelectionRange === 'function') {
		const n = el.value.length;
		el.setSelectionRange(n, n);
	}
	return true;
})()`, finder)
}
