// Command reports runs the canned people reports from the command line.
//
//	reports list
//	reports run highest-salaried --scenario top-earners --driver memory
//	reports seed ./people.yaml --db ./people.db
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
