// sbsim replays the stream buffer microbenchmark access patterns against a
// software model of the stream buffer prefetcher and reports hit rates.
package main

func main() {
	Execute()
}
