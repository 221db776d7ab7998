// SPDX-License-Identifier: MPL-2.0

package nodemodules

import "strings"

// builtinModules are the Node core module ids, including the subpaths Node
// exposes. They never live on disk, so a specifier naming one cannot be
// mapped to a package.
var builtinModules = map[string]struct{}{
	"assert": {}, "assert/strict": {}, "async_hooks": {}, "buffer": {},
	"child_process": {}, "cluster": {}, "console": {}, "constants": {},
	"crypto": {}, "dgram": {}, "diagnostics_channel": {}, "dns": {},
	"dns/promises": {}, "domain": {}, "events": {}, "fs": {},
	"fs/promises": {}, "http": {}, "http2": {}, "https": {},
	"inspector": {}, "inspector/promises": {}, "module": {}, "net": {},
	"os": {}, "path": {}, "path/posix": {}, "path/win32": {},
	"perf_hooks": {}, "process": {}, "punycode": {}, "querystring": {},
	"readline": {}, "readline/promises": {}, "repl": {}, "stream": {},
	"stream/consumers": {}, "stream/promises": {}, "stream/web": {},
	"string_decoder": {}, "sys": {}, "timers": {}, "timers/promises": {},
	"tls": {}, "trace_events": {}, "tty": {}, "url": {}, "util": {},
	"util/types": {}, "v8": {}, "vm": {}, "wasi": {}, "worker_threads": {},
	"zlib": {},
}

// IsBuiltin reports whether specifier names a Node core module, either by
// its exact id ("fs", "fs/promises") or with the "node:" scheme. Other
// paths under a core name, such as "events/x", are ordinary packages.
func IsBuiltin(specifier string) bool {
	if strings.HasPrefix(specifier, "node:") {
		return true
	}
	_, ok := builtinModules[specifier]
	return ok
}
