// smart-tra answers natural-language Taiwan Railway queries, either
// directly on the command line or as an MCP server.
package main

import (
	"github.com/lis186/smart-tra-mcp-server/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
