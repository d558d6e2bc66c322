// Package process terminates external helper processes (the headless
// browser, an external conversion engine) together with their children.
package process
