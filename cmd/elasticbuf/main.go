// Command elasticbuf runs the elastic buffer benches.
package main

import "github.com/sarchlab/elasticbuf/cmd/elasticbuf/cmd"

func main() {
	cmd.Execute()
}
