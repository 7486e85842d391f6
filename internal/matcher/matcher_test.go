package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync-go/internal/types"
)

func resumeWithSkills(categories ...types.SkillCategory) *types.ResumeData {
	data := types.NewResumeData()
	data.Skills = categories
	return data
}

func TestMatchCaseInsensitiveExact(t *testing.T) {
	resume := resumeWithSkills(types.SkillCategory{
		Category: "Languages",
		Items:    []string{"Python", "Go"},
	})
	job := &types.JobDetails{Skills: []string{"python", "rust"}}

	result := Match(resume, job)

	assert.Equal(t, 50, result.Percentage, "两项中命中一项应为 50%")
	assert.Equal(t, []string{"python"}, result.Matched, "命中列表应为职位侧小写形式")
	assert.Equal(t, []string{"rust"}, result.Missing, "缺失列表应为职位侧小写形式")
}

func TestMatchNoFuzzyMatching(t *testing.T) {
	resume := resumeWithSkills(types.SkillCategory{
		Category: "Frontend",
		Items:    []string{"React"},
	})
	job := &types.JobDetails{Skills: []string{"React.js"}}

	result := Match(resume, job)

	assert.Equal(t, 0, result.Percentage, "React 不应匹配 React.js")
	assert.Empty(t, result.Matched)
	assert.Equal(t, []string{"react.js"}, result.Missing)
}

func TestMatchFlattensCategories(t *testing.T) {
	resume := resumeWithSkills(
		types.SkillCategory{Category: "Languages", Items: []string{"Go"}},
		types.SkillCategory{Category: "Databases", Items: []string{"MySQL", "Redis"}},
	)
	job := &types.JobDetails{Skills: []string{"MYSQL", "redis", "go"}}

	result := Match(resume, job)

	assert.Equal(t, 100, result.Percentage, "所有分组的技能都应参与匹配")
	assert.Equal(t, []string{"mysql", "redis", "go"}, result.Matched)
	assert.Empty(t, result.Missing)
}

func TestMatchEmptyJobSkills(t *testing.T) {
	resume := resumeWithSkills(types.SkillCategory{Category: "Languages", Items: []string{"Go"}})

	result := Match(resume, &types.JobDetails{Skills: []string{}})

	assert.Equal(t, 0, result.Percentage, "职位技能为空时得分应为 0")
	assert.Empty(t, result.Matched)
	assert.Empty(t, result.Missing)
}

func TestMatchNilInputs(t *testing.T) {
	result := Match(nil, nil)
	require.NotNil(t, result, "空输入也应返回有效结果")
	assert.Equal(t, 0, result.Percentage)
}

func TestMatchRoundingHalfUp(t *testing.T) {
	// 三项中命中一项: 33.33... -> 33;三项中命中两项: 66.66... -> 67
	resume := resumeWithSkills(types.SkillCategory{Category: "L", Items: []string{"a"}})
	job := &types.JobDetails{Skills: []string{"a", "b", "c"}}
	assert.Equal(t, 33, Match(resume, job).Percentage)

	resume = resumeWithSkills(types.SkillCategory{Category: "L", Items: []string{"a", "b"}})
	assert.Equal(t, 67, Match(resume, job).Percentage)
}

func TestMatchDoesNotMutateResume(t *testing.T) {
	resume := resumeWithSkills(types.SkillCategory{Category: "Languages", Items: []string{"Python"}})
	job := &types.JobDetails{Skills: []string{"PYTHON"}}

	Match(resume, job)

	assert.Equal(t, []string{"Python"}, resume.Skills[0].Items, "简历记录不应被修改")
	assert.Equal(t, []string{"PYTHON"}, job.Skills, "职位记录不应被修改")
}
