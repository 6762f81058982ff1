// Package jshost adapts a browser page to the locator and provider
// contracts. It is only built for js/wasm.
package jshost
