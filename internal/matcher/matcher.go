// Package matcher 实现简历技能与职位要求之间的匹配计算。
// 只做大小写不敏感的精确匹配，不做任何语义或模糊匹配。
package matcher

import (
	"math"
	"strings"

	"skillsync-go/internal/types"
)

// Match 把简历的所有技能分组拍平后与职位要求的技能逐一比对，
// 返回命中列表、缺失列表和百分比得分。纯函数，任意输入都不会失败。
//
// 比对双方都先转小写，输出沿用职位侧的小写形式；简历记录本身不被修改。
// 百分比 = round(命中数 / 职位技能数 * 100)，职位技能为空时得分为 0。
func Match(resume *types.ResumeData, job *types.JobDetails) *types.MatchResult {
	result := &types.MatchResult{
		Matched: []string{},
		Missing: []string{},
	}
	if resume == nil || job == nil || len(job.Skills) == 0 {
		return result
	}

	resumeSkills := resume.FlattenSkills()
	lowered := make([]string, len(resumeSkills))
	for i, s := range resumeSkills {
		lowered[i] = strings.ToLower(s)
	}

	// 预期规模在几十个技能以内，线性扫描足够
	for _, jobSkill := range job.Skills {
		want := strings.ToLower(jobSkill)
		if containsSkill(lowered, want) {
			result.Matched = append(result.Matched, want)
		} else {
			result.Missing = append(result.Missing, want)
		}
	}

	result.Percentage = int(math.Round(
		float64(len(result.Matched)) / float64(len(job.Skills)) * 100))
	return result
}

func containsSkill(skills []string, want string) bool {
	for _, s := range skills {
		if s == want {
			return true
		}
	}
	return false
}
