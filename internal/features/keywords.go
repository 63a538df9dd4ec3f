// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package features

import (
	"sync"

	"github.com/tomtom215/postpulse/internal/textmatch"
)

// Keyword set categories fed to the matcher.
const (
	kwCrypto  = "crypto"
	kwTrading = "trading_slang"
	kwJargon  = "tech_jargon"
)

var cryptoKeywords = []string{
	"bitcoin", "btc", "ethereum", "eth", "solana", "sol", "token",
	"airdrop", "defi", "nft", "dao", "staking", "onchain", "wallet",
	"memecoin", "altcoin", "stablecoin", "mint", "bridge", "gas",
}

var tradingSlang = []string{
	"hodl", "fomo", "fud", "whale", "bagholder", "diamond hands",
	"paper hands", "ape", "degen", "moonshot", "rugpull", "pump and dump",
	"buy the dip", "to the moon", "wen", "ser", "gm", "wagmi", "ngmi",
	"rekt", "lfg", "shill", "alpha", "exit liquidity",
}

var techJargon = []string{
	"blockchain", "smart contract", "consensus", "validator", "rollup",
	"zk", "layer 2", "l2", "mainnet", "testnet", "protocol", "oracle",
	"liquidity pool", "amm", "tvl", "yield", "slippage", "mev",
	"merkle", "hash rate",
}

var (
	keywordMatcher     *textmatch.Matcher
	keywordMatcherOnce sync.Once
)

// matcher builds the shared keyword automaton on first use. The sets
// are fixed at compile time, so one automaton serves all extractions.
func matcher() *textmatch.Matcher {
	keywordMatcherOnce.Do(func() {
		m := textmatch.NewMatcher()
		m.Add(kwCrypto, cryptoKeywords...)
		m.Add(kwTrading, tradingSlang...)
		m.Add(kwJargon, techJargon...)
		m.Build()
		keywordMatcher = m
	})
	return keywordMatcher
}

// keywordFeatures counts distinct keyword hits per set. Distinct means
// each keyword contributes at most once no matter how often it repeats,
// which keeps spam posts from inflating the counts.
func keywordFeatures(text string, out map[string]float64) {
	counts := matcher().CountDistinct(text)
	out[FeatCryptoKeywordCount] = float64(counts[kwCrypto])
	out[FeatTradingSlangCount] = float64(counts[kwTrading])
	out[FeatTechJargonCount] = float64(counts[kwJargon])
}
