package types

const (
	EventTypeDomainRegistered   = "domain_registered"
	EventTypeDomainRenewed      = "domain_renewed"
	EventTypeDomainTransferred  = "domain_transferred"
	EventTypeResolverUpdated    = "resolver_updated"
	EventTypeMetadataUpdated    = "metadata_updated"
	EventTypeRelayIncentivePaid = "relay_incentive_paid"
	EventTypeParamsUpdated      = "params_updated"
	EventTypeFeesWithdrawn      = "fees_withdrawn"

	AttributeKeyName      = "name"
	AttributeKeyNameHash  = "name_hash"
	AttributeKeyOwner     = "owner"
	AttributeKeyNewOwner  = "new_owner"
	AttributeKeyResolver  = "resolver"
	AttributeKeyExpiresAt = "expires_at"
	AttributeKeyFee       = "fee"
	AttributeKeyGasless   = "gasless"
	AttributeKeySubmitter = "submitter"
	AttributeKeyAmount    = "amount"
	AttributeKeyVersion   = "version"
	AttributeKeyRecipient = "recipient"
)
