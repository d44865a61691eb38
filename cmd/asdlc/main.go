// Command asdlc is the ASDL compiler's command-line entry point.
package main

func main() {
	Execute()
}
