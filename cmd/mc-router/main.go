// Command mc-router is the CLI entrypoint wiring configuration, graph I/O,
// and the decomposition/scheduling core together. Everything interesting
// lives in the library packages; this binary only plumbs them end to end.
package main

func main() {
	Execute()
}
