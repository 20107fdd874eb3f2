package model

const (
	FeedBaseFee        Feed = "base_fee"
	FeedMinerFee       Feed = "miner_fee"
	FeedTransferVolume Feed = "transfer_volume"
)

type (
	Feed string
)

func (f Feed) String() string {
	return string(f)
}
