package model

import "strings"

// AddressFamily 地址格式族
type AddressFamily string

const (
	FamilyEVM    AddressFamily = "evm"
	FamilySolana AddressFamily = "solana"
)

// Chain 链信息，Slug 与 NumericID 是同一条链的两种标识
type Chain struct {
	Slug      string        `json:"slug"`
	NumericID string        `json:"numeric_id,omitempty"`
	Family    AddressFamily `json:"family"`
}

var knownChains = []Chain{
	{Slug: "ethereum", NumericID: "1", Family: FamilyEVM},
	{Slug: "bsc", NumericID: "56", Family: FamilyEVM},
	{Slug: "polygon", NumericID: "137", Family: FamilyEVM},
	{Slug: "avalanche", NumericID: "43114", Family: FamilyEVM},
	{Slug: "arbitrum", NumericID: "42161", Family: FamilyEVM},
	{Slug: "optimism", NumericID: "10", Family: FamilyEVM},
	{Slug: "base", NumericID: "8453", Family: FamilyEVM},
	{Slug: "solana", Family: FamilySolana},
}

// LookupChain 通过 slug 或数字 ID 查找链，大小写不敏感
func LookupChain(id string) (Chain, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return Chain{}, false
	}
	for _, c := range knownChains {
		if c.Slug == id || (c.NumericID != "" && c.NumericID == id) {
			return c, true
		}
	}
	return Chain{}, false
}

// Matches 判断交易对上的 chainId 是否属于该链
func (c Chain) Matches(chainID string) bool {
	chainID = strings.ToLower(strings.TrimSpace(chainID))
	if chainID == "" {
		return false
	}
	return chainID == c.Slug || (c.NumericID != "" && chainID == c.NumericID)
}
