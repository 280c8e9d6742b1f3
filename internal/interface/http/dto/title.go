package dto

// RegisterTitleRequest HTTP登记新书请求
// name为空时从外部目录补全
type RegisterTitleRequest struct {
	ISBN        string `json:"isbn" binding:"required,min=10,max=17" example:"9787115428028"`
	Name        string `json:"name" binding:"max=200" example:"Go语言实战"`
	Author      string `json:"author" binding:"max=100" example:"威廉·肯尼迪"`
	Category    string `json:"category" binding:"max=50" example:"programming"`
	Publisher   string `json:"publisher" binding:"max=100" example:"人民邮电出版社"`
	CoverURL    string `json:"cover_url" binding:"omitempty,url,max=500" example:"https://example.com/cover.jpg"`
	Description string `json:"description" binding:"max=5000"`
	Copies      int    `json:"copies" binding:"min=0,max=10000" example:"3"`
}

// ListTitlesRequest HTTP图书列表请求
type ListTitlesRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
}

// AdjustStockRequest HTTP库存校正请求
// 用指针区分"没传"和0
type AdjustStockRequest struct {
	Total     *int `json:"total" binding:"required,min=0" example:"5"`
	Available *int `json:"available" binding:"required,min=0" example:"3"`
}

// AddCopiesRequest HTTP补货请求
type AddCopiesRequest struct {
	Copies int `json:"copies" binding:"required,min=1,max=10000" example:"2"`
}
