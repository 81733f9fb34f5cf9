// Package pathutil implements component C: splitting an absolute path into
// its parent prefix and final segment, and splitting it into its ordered,
// non-empty path segments. Grounded on the original C's get_pdir_name /
// pathname_final (_examples/original_source/ext2_utils.c), re-expressed per
// design notes §9 with Go string slicing instead of allocating C strings:
// Split returns substrings of the original path without copying, while
// Segments allocates the slice that holds its results.
package pathutil

import "strings"

// Split returns path's parent and final segment. For "/a/b/c" that is
// ("/a/b", "c"); for "/a" that is ("/", "a"); Split("/") returns ("/", "").
func Split(path string) (parent string, final string) {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return "/", ""
	}

	idx := strings.LastIndexByte(trimmed, '/')
	if idx <= 0 {
		return "/", trimmed[idx+1:]
	}
	return trimmed[:idx], trimmed[idx+1:]
}

// Segments splits an absolute path into its ordered, non-empty components,
// exactly as the resolver (component D) walks them (spec.md §4.5: "split
// the path on / into segments (empty segments skipped)").
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
