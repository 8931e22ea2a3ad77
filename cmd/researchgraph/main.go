// Command researchgraph runs the research pipeline from the terminal:
// plan a query, search the web, validate, extract findings, and write a
// report, checkpointing every step so interrupted runs can resume.
package main

func main() {
	Execute()
}
