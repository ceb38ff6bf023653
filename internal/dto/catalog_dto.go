package dto

// TierResponse is one row of the tier catalog.
type TierResponse struct {
	ID              int    `json:"tier_id"`
	Name            string `json:"name"`
	DifficultyOrder int    `json:"difficulty_order"`
	Description     string `json:"description,omitempty"`
}

// CollegeResponse is one row of the college catalog.
type CollegeResponse struct {
	ID   string `json:"college_id"`
	Name string `json:"college_name"`
}
