// Package controller reads game controllers through Linux input devices.
// Each opened device is one controller; its pressed keys are mapped to
// logical buttons through a Keymap.
package controller
