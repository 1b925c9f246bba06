// Package main is the NoteKeeper command: an interactive note shell and an
// HTTP view API over the same note collection.
package main

func main() {
	Execute()
}
