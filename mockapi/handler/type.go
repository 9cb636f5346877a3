package handler

type ExperimentIDParam struct {
	ID string `uri:"id" json:"id" binding:"required"`
}

type ListParam struct {
	ProjectIDs []string `form:"projectHandle" json:"projectHandle"`
	Tags       []string `form:"tag" json:"tag"`
	Offset     int      `form:"offset" json:"offset" binding:"min=0"`
	Limit      int      `form:"limit" json:"limit" binding:"min=0"`
}

type LogsParam struct {
	ExperimentID string `form:"experimentId" json:"experimentId" binding:"required"`
	Line         int    `form:"line" json:"line" binding:"min=0"`
	Limit        int    `form:"limit" json:"limit" binding:"min=0"`
}
