package entities

// TransactionType represents the type of points change
type TransactionType string

const (
	TransactionTypeCheckpointScan   TransactionType = "checkpoint_scan"
	TransactionTypeRewardRedemption TransactionType = "reward_redemption"
)

// IsCredit returns true if the transaction type adds points
func (tt TransactionType) IsCredit() bool {
	return tt == TransactionTypeCheckpointScan
}

// IsDebit returns true if the transaction type removes points
func (tt TransactionType) IsDebit() bool {
	return tt == TransactionTypeRewardRedemption
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
