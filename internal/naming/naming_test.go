package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaseHelpers(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		function func(string) string
	}{
		{name: "Camel snake", input: "sys_user_post", expected: "sysUserPost", function: Camel},
		{name: "Camel pascal", input: "SysJobLog", expected: "sysJobLog", function: Camel},
		{name: "Camel single", input: "log", expected: "log", function: Camel},
		{name: "Camel upper snake", input: "JOB_LOG_ID", expected: "jobLogId", function: Camel},
		{name: "Camel acronym", input: "XMLHttpRequest", expected: "xmlHttpRequest", function: Camel},
		{name: "Pascal snake", input: "sys_job_log", expected: "SysJobLog", function: Pascal},
		{name: "Pascal camel", input: "dictType", expected: "DictType", function: Pascal},
		{name: "Kebab pascal", input: "SysJobLog", expected: "sys-job-log", function: Kebab},
		{name: "Kebab camel", input: "jobLog", expected: "job-log", function: Kebab},
		{name: "Kebab single", input: "post", expected: "post", function: Kebab},
		{name: "Plural simple", input: "log", expected: "logs", function: Plural},
		{name: "Plural kebab", input: "job-log", expected: "job-logs", function: Plural},
		{name: "Plural y", input: "category", expected: "categories", function: Plural},
		{name: "Plural empty", input: "", expected: "", function: Plural},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.function(tc.input))
		})
	}
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"sys", "user", "post"}, Words("sys_user_post"))
	assert.Equal(t, []string{"user", "2", "fa"}, Words("user 2 fa"))
	assert.Equal(t, []string{"v2", "api"}, Words("v2Api"))
	assert.Empty(t, Words("__"))
}
