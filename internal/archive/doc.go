// Package archive lists and extracts runtime and package archives. Zip
// (including wheel files) and gzip-compressed tar are supported; the format
// is chosen from the file name.
package archive
