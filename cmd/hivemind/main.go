// Command hivemind runs the hive mind agent orchestrator.
package main

func main() {
	Execute()
}
