package commerceposts

const (
	queryListInRange = `
		SELECT id, user_id, COALESCE(ltk_id, ''), COALESCE(permalink, ''), COALESCE(caption, ''),
			published_at, COALESCE(clicks, 0), COALESCE(revenue, 0), COALESCE(items_sold, 0),
			COALESCE(conversion_rate, 0)
		FROM ltk_posts
		WHERE user_id = $1
			AND published_at >= $2
			AND published_at < $3
		ORDER BY published_at DESC, id
	`
)
