// Package idgen 基于雪花算法生成业务编号
package idgen

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Generator 生成全局唯一、随时间单调递增的编号
type Generator struct {
	node *snowflake.Node
}

// New 创建生成器，nodeID 取值范围 [0, 1023]，多实例部署时必须互不相同
func New(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

// Confirmation 生成订单确认号，格式 ORD-<base36>
func (g *Generator) Confirmation() string {
	return "ORD-" + strings.ToUpper(g.node.Generate().Base36())
}
