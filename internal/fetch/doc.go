// Package fetch downloads a URL into a local file. HTTPFetcher streams the
// response body straight to disk with optional percentage progress;
// CommandFetcher shells out to curl through the runner package. Both promise
// the same thing on failure: no file is left at the destination path.
package fetch
