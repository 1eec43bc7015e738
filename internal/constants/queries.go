package constants

// Reference SQL for the predefined queries. The results are computed from
// the memoized tables; the text is shown to analysts alongside each result.
const (
	QueryTopDomesticGrowth = `
	SELECT a.airport AS name,
	       d."2022_enplaned_passengers_dom" AS "2022_passengers",
	       d."2023_enplaned_passengers_dom" AS "2023_passengers",
	       d.percentage_change_2022_2023_dom AS percentage_change
	FROM domestic d
	JOIN airports a ON a.id = d.airport_id
	ORDER BY d.percentage_change_2022_2023_dom DESC
	LIMIT 10
	`

	QueryTopDomesticIncrease = `
	SELECT a.airport AS name,
	       d."2022_enplaned_passengers_dom" AS "2022_passengers",
	       d."2023_enplaned_passengers_dom" AS "2023_passengers",
	       d."2023_enplaned_passengers_dom" - d."2022_enplaned_passengers_dom" AS increase
	FROM domestic d
	JOIN airports a ON a.id = d.airport_id
	ORDER BY increase DESC
	LIMIT 10
	`

	QueryDomesticGrowthOver20 = `
	SELECT a.airport AS name,
	       d."2022_enplaned_passengers_dom" AS "2022_passengers",
	       d."2023_enplaned_passengers_dom" AS "2023_passengers",
	       d.percentage_change_2022_2023_dom
	FROM domestic d
	JOIN airports a ON a.id = d.airport_id
	WHERE d.percentage_change_2022_2023_dom > 20
	ORDER BY d.percentage_change_2022_2023_dom DESC
	`

	QueryInternationalProportion = `
	SELECT a.airport AS airport_name,
	       ROUND(i."2023_enplaned_passengers_inter"::numeric
	             / SUM(i."2023_enplaned_passengers_inter") OVER (), 3) AS proportion
	FROM international i
	JOIN airports a ON a.id = i.airport_id
	ORDER BY proportion DESC
	`

	QueryTopStates = `
	SELECT s.name AS states,
	       SUM(d."2023_enplaned_passengers_dom" + i."2023_enplaned_passengers_inter") AS total_passengers
	FROM domestic d
	JOIN international i ON i.airport_id = d.airport_id
	JOIN airports a ON a.id = d.airport_id
	JOIN state s ON s.id = a.state_id
	GROUP BY s.name
	ORDER BY total_passengers DESC
	LIMIT 5
	`

	QueryImprovedTotalRanking = `
	SELECT a.airport AS name, t."2022_rank_total", t."2023_rank_total"
	FROM total t
	JOIN airports a ON a.id = t.airport_id
	WHERE t."2023_rank_total" < t."2022_rank_total"
	ORDER BY t."2023_rank_total"
	`
)
