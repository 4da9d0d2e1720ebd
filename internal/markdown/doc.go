// Package markdown holds the lossless block tree used by the expansion
// engine. Documents are read with goldmark, but every block keeps the exact
// source lines it came from so untouched regions serialise back byte for
// byte. Only containers whose children were edited are rebuilt.
package markdown
