// Package testutil contains test doubles shared across packages: recording
// observer connections, a scripted model completer and a recording logger.
// They keep tests free of network backends and real websockets. They are not
// intended for production usage.
package testutil
