package lcov

import (
	"os/exec"
	"strings"
	"sync"
)

// CommandDemangler returns a demangle function backed by an external
// command such as "swift demangle" or "c++filt". The symbol is passed
// as the final argument and the command's first output line is used.
// Any failure falls back to the verbatim name; a report must never die
// on a symbol it cannot prettify. Results are memoized since the same
// symbols recur across files.
func CommandDemangler(command string) func(string) string {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil
	}

	var mu sync.Mutex
	cache := map[string]string{}

	return func(name string) string {
		mu.Lock()
		cached, ok := cache[name]
		mu.Unlock()
		if ok {
			return cached
		}

		out, err := exec.Command(parts[0], append(parts[1:], name)...).Output()
		result := name
		if err == nil {
			if line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n"); line != "" {
				// swift demangle echoes "<mangled> ---> <readable>"
				if _, readable, found := strings.Cut(line, " ---> "); found {
					result = readable
				} else {
					result = line
				}
			}
		}

		mu.Lock()
		cache[name] = result
		mu.Unlock()
		return result
	}
}
