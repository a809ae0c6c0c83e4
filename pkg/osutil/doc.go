// Package osutil holds the platform-specific process plumbing used when the
// converter shells out to the external installer.
package osutil
