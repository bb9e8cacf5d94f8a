package posts

const (
	postColumns = `
		id, user_id, COALESCE(platform, ''), COALESCE(external_post_id, ''), COALESCE(post_url, ''),
		COALESCE(post_type, ''), COALESCE(caption, ''), posted_at,
		COALESCE(likes, 0), COALESCE(comments, 0), COALESCE(shares, 0), COALESCE(saves, 0),
		COALESCE(views, 0), COALESCE(reach, 0), COALESCE(engagement_rate, 0),
		COALESCE(attributed_revenue, 0), COALESCE(attributed_sales, 0)
	`

	queryListByUser = `
		SELECT ` + postColumns + `
		FROM social_posts
		WHERE user_id = $1
		ORDER BY posted_at DESC NULLS LAST, id
	`

	queryListPublishedBetween = `
		SELECT ` + postColumns + `
		FROM social_posts
		WHERE user_id = $1
			AND posted_at >= $2
			AND posted_at < $3
		ORDER BY posted_at DESC, id
	`
)
