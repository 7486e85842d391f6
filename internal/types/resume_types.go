package types

// NotFound 是缺失标量字段的统一占位值
const NotFound = "Not found"

// ParseFailedName 解析完全失败时写入 Name 字段的哨兵值
const ParseFailedName = "Error: Parsing failed"

// EducationItem 表示一段教育经历
type EducationItem struct {
	Degree     string   `json:"degree"`     // 学位或学历行
	University string   `json:"university"` // 学校名称
	Duration   string   `json:"duration"`   // 起止时间
	Details    []string `json:"details"`    // CGPA、百分比等补充行
}

// SkillCategory 表示一个技能分组
type SkillCategory struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// ResumeData 表示从简历文本中提取出的结构化数据
type ResumeData struct {
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Education []EducationItem `json:"education"`
	Skills    []SkillCategory `json:"skills"`
}

// NewResumeData 返回所有标量字段均为占位值的空记录
func NewResumeData() *ResumeData {
	return &ResumeData{
		Name:      NotFound,
		Email:     NotFound,
		Phone:     NotFound,
		Education: []EducationItem{},
		Skills:    []SkillCategory{},
	}
}

// ParseFailedResumeData 返回解析失败哨兵记录。
// 调用方据此判断模型输出无法恢复，而不是依赖 error 返回值。
func ParseFailedResumeData() *ResumeData {
	r := NewResumeData()
	r.Name = ParseFailedName
	return r
}

// IsParseFailed 判断记录是否为解析失败哨兵
func (r *ResumeData) IsParseFailed() bool {
	return r != nil && r.Name == ParseFailedName
}

// FlattenSkills 把所有技能分组拍平成一个条目列表
func (r *ResumeData) FlattenSkills() []string {
	var items []string
	for _, cat := range r.Skills {
		items = append(items, cat.Items...)
	}
	return items
}

// JobDetails 表示从职位描述中提取出的要求。
// 提取失败不返回 error，失败原因随记录一起携带在 Error 字段中。
type JobDetails struct {
	Skills     []string `json:"skills"`
	Education  []string `json:"education"`
	Experience string   `json:"experience"`
	Error      string   `json:"error,omitempty"`
}

// FailedJobDetails 构造一条携带失败原因的空记录
func FailedJobDetails(reason string) *JobDetails {
	return &JobDetails{
		Skills:     []string{},
		Education:  []string{},
		Experience: "",
		Error:      reason,
	}
}

// MatchResult 表示简历与职位要求的匹配结果
type MatchResult struct {
	Percentage int      `json:"percentage"`     // 0-100
	Matched    []string `json:"matched_skills"` // 职位侧小写形式
	Missing    []string `json:"missing_skills"` // 职位侧小写形式
}
