// Package patreon is a session-holding client for the Patreon web API.
//
// A Client logs in once with an email and password, keeps the session cookies
// in its jar and reuses them for the campaign listing, the cursor paginated
// posts listing and file downloads. Responses are JSON:API documents; the
// Document, Resource and Linkage types decode them without assuming which
// attributes are present.
//
// All failures are *errors.Error values typed as network, status, decode or
// pagination errors.
//
//	client, err := patreon.NewClient(patreon.Options{Timeout: time.Minute})
//	if err := client.Login(ctx, email, password); err != nil {
//	    return err
//	}
//	campaigns, err := client.ListCampaigns(ctx)
//	content, err := client.FetchCampaignContent(ctx, campaigns[0].ID)
package patreon
