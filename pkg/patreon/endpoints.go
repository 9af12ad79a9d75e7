package patreon

import (
	"net/url"
	"strings"
)

const (
	// BaseURL is the default Patreon web endpoint
	BaseURL = "https://www.patreon.com"

	// AuthEndpoint accepts email/password logins
	AuthEndpoint = "/api/auth"

	// CurrentUserEndpoint describes the logged in user and their pledges
	CurrentUserEndpoint = "/api/current_user"

	// PostsEndpoint lists a campaign's posts
	PostsEndpoint = "/api/posts"

	// JSONAPIVersion is sent with every API call
	JSONAPIVersion = "1.0"

	// JSONAPIContentType is the request content type for API writes
	JSONAPIContentType = "application/vnd.api+json"
)

var postIncludes = []string{
	"campaign",
	"access_rules",
	"attachments",
	"audio",
	"audio_preview.null",
	"images",
	"media",
	"native_video_insights",
	"poll.choices",
	"poll.current_user_responses.user",
	"poll.current_user_responses.choice",
	"poll.current_user_responses.poll",
	"user",
	"user_defined_tags",
	"ti_checks",
}

var postFields = map[string][]string{
	"campaign": {
		"currency", "show_audio_post_download_links", "avatar_photo_url", "avatar_photo_image_urls",
		"earnings_visibility", "is_nsfw", "is_monthly", "name", "url",
	},
	"post": {
		"change_visibility_at", "comment_count", "commenter_count", "content", "current_user_can_comment",
		"current_user_can_delete", "current_user_can_report", "current_user_can_view",
		"current_user_comment_disallowed_reason", "current_user_has_liked", "embed", "image",
		"impression_count", "insights_last_updated_at", "is_paid", "like_count", "meta_image_url",
		"min_cents_pledged_to_view", "post_file", "post_metadata", "published_at", "patreon_url", "post_type",
		"pledge_url", "preview_asset_type", "thumbnail", "thumbnail_url", "teaser_text", "title", "upgrade_url", "url",
		"was_posted_by_campaign_owner", "has_ti_violation", "moderation_status",
		"post_level_suspension_removal_date", "pls_one_liners_by_category", "video_preview", "view_count",
	},
	"post_tag":    {"tag_type", "value"},
	"user":        {"image_url", "full_name", "url"},
	"access_rule": {"access_rule_type", "amount_cents"},
	"media":       {"id", "image_urls", "download_url", "metadata", "file_name"},
	"native_video_insights": {
		"average_view_duration", "average_view_pct", "has_preview", "id", "last_updated_at",
		"num_views", "preview_views", "video_duration",
	},
}

// AuthParams returns the query parameters for a login request
func AuthParams() url.Values {
	params := url.Values{}
	params.Set("include", "user.null")
	params.Set("fields[user]", "[]")
	params.Set("json-api-version", JSONAPIVersion)
	return params
}

// CurrentUserParams returns the query parameters for the campaign listing request
func CurrentUserParams() url.Values {
	params := url.Values{}
	params.Set("include", "pledges.creator.campaign.null")
	params.Set("json-api-version", JSONAPIVersion)
	return params
}

// PostsParams returns the query parameters for one page of a campaign's posts.
// An empty cursor requests the first page.
func PostsParams(campaignID, cursor string) url.Values {
	params := url.Values{}
	params.Set("include", strings.Join(postIncludes, ","))
	for resource, fields := range postFields {
		params.Set("fields["+resource+"]", strings.Join(fields, ","))
	}
	params.Set("filter[campaign_id]", campaignID)
	params.Set("filter[contains_exclusive_posts]", "true")
	params.Set("filter[is_draft]", "false")
	params.Set("sort", "-published_at")
	params.Set("json-api-version", JSONAPIVersion)
	if cursor != "" {
		params.Set("page[cursor]", cursor)
	}
	return params
}

// BuildURL joins base, endpoint and the encoded params
func BuildURL(base, endpoint string, params url.Values) string {
	u := strings.TrimRight(base, "/") + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// HomeURL is the redirect target sent with logins
func HomeURL(base string) string {
	return strings.TrimRight(base, "/") + "/home"
}
