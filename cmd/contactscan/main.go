// Package main provides the entry point for the contactscan CLI.
//
// contactscan crawls a website one hop deep from a seed URL and extracts
// contact information (email addresses and phone numbers) from the pages
// it finds.
//
// Usage:
//
//	contactscan crawl https://example.com/
//	contactscan crawl --render https://spa-site.example.com/
//
// See --help for all available options.
package main

// main is the entry point for contactscan.
func main() {
	Execute()
}
