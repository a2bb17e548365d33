package utils

import (
	"fmt"
	"strings"
)

// SnapshotKey 最新快照的 redis key。EVM 地址统一小写，Solana 地址区分大小写保持原样
func SnapshotKey(chain, contractAddress string) string {
	return fmt.Sprintf("onchain_health:snapshot:%s:%s", chain, addressKey(contractAddress))
}

// SnapshotTopicKey kafka 消息 key，同一代币落在同一分区
func SnapshotTopicKey(chain, contractAddress string) string {
	return fmt.Sprintf("%s_%s", chain, addressKey(contractAddress))
}

func addressKey(addr string) string {
	if strings.HasPrefix(addr, "0x") || strings.HasPrefix(addr, "0X") {
		return strings.ToLower(addr)
	}
	return addr
}
