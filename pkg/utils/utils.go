package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"onchain-health/internal/worker/model"
)

var ErrInvalidAddress = errors.New("invalid contract address")

// NormalizeAddress 校验合约地址并返回规范格式：EVM 地址转为 EIP-55 checksum，Solana 地址原样返回
func NormalizeAddress(addr string, family model.AddressFamily) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	switch family {
	case model.FamilyEVM:
		if !common.IsHexAddress(addr) {
			return "", fmt.Errorf("%w: %s is not a hex address", ErrInvalidAddress, addr)
		}
		return common.HexToAddress(addr).Hex(), nil
	case model.FamilySolana:
		pk, err := solana.PublicKeyFromBase58(addr)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrInvalidAddress, addr, err)
		}
		return pk.String(), nil
	default:
		return "", fmt.Errorf("%w: unsupported address family %q", ErrInvalidAddress, family)
	}
}

// ParseAmount 解析非负的十进制数量字符串
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount: %s", s)
	}
	return d, nil
}

// FormatAmount 输出不带科学计数法的十进制字符串
func FormatAmount(d decimal.Decimal) string {
	return d.String()
}
