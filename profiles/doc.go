// Package profiles reads expert profiles from the relational store and
// converts them into semantic documents for indexing.
//
// The store is read with a single query returning
// (user_id, first_name, last_name, expertise, years_of_experience,
// organization_detail, field_of_interest, requirements). Connection failures
// surface as core.ErrStoreUnavailable; rows that cannot be read into that
// shape surface as core.ErrStoreQuery together with an empty result.
package profiles
