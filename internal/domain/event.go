package domain

// Known on-chain event types.
const (
	EventTypeDepositCEX  = "deposit_cex"
	EventTypeWithdrawCEX = "withdraw_cex"
	EventTypeSwap        = "swap"
)

// EventContext is the input to an escalation decision. One per incoming
// event, ephemeral.
type EventContext struct {
	TxHash            string
	WalletCredibility float64
	SizeFrac          float64 // fraction of the wallet's holdings moved
	NotionalUSD       float64
	EventType         string
}
