package sales

const (
	queryListByUser = `
		SELECT id, user_id, COALESCE(product_name, ''), COALESCE(amount, 0), sale_date, COALESCE(platform, '')
		FROM sales
		WHERE user_id = $1
		ORDER BY sale_date DESC NULLS LAST, id
	`

)
