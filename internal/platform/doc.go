// Package platform contains OS integration: filesystem helpers, filename
// sanitization, external binary resolution, native playlist listing and
// OS open/reveal.
package platform
