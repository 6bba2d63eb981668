// Package testutil builds throwaway sites on disk and asserts on the files a
// build leaves behind.
package testutil
