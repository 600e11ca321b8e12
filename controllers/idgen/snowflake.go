// controllers/idgen/snowflake.go
package idgen

import (
	"log"
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node

// Init sets up the snowflake node. STATION_NODE distinguishes stations that
// ever share one database export.
func Init() {
	nodeID := int64(1)
	if v, err := strconv.ParseInt(os.Getenv("STATION_NODE"), 10, 64); err == nil {
		nodeID = v
	}

	var err error
	node, err = snowflake.NewNode(nodeID)
	if err != nil {
		log.Fatalf("Failed to init Snowflake: %v", err)
	}
}

func GenerateID() int64 {
	return node.Generate().Int64()
}
