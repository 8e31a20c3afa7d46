package types

import (
	"cosmossdk.io/math"
)

// RegistrationFee prices a registration of name for duration seconds. Short
// names carry the premium multiplier. The multiplication happens before the
// division so the result never decreases as duration grows.
func RegistrationFee(p Params, name string, duration uint64) math.Int {
	multiplier := uint64(1)
	if uint32(len(name)) <= p.ShortNameThreshold {
		multiplier = p.ShortNameMultiplier
	}
	return p.BaseFee.
		Mul(math.NewIntFromUint64(multiplier)).
		Mul(math.NewIntFromUint64(duration)).
		Quo(math.NewIntFromUint64(p.UnitPeriod))
}

// RenewalFee prices extending any domain by duration seconds.
func RenewalFee(p Params, duration uint64) math.Int {
	return p.BaseFee.
		Mul(math.NewIntFromUint64(duration)).
		Quo(math.NewIntFromUint64(p.UnitPeriod))
}

// RelayReward is the submitter's share of the engine reward.
func RelayReward(p Params, engineReward math.Int) math.Int {
	if engineReward.IsNil() || !engineReward.IsPositive() {
		return math.ZeroInt()
	}
	return engineReward.
		Mul(math.NewIntFromUint64(uint64(p.RelayRewardBps))).
		Quo(math.NewIntFromUint64(uint64(BpsDenominator)))
}
