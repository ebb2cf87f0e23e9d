// Package platform describes the per-OS layout of an installed runtime tree
// and wraps the few filesystem calls whose behavior differs on Windows.
package platform
