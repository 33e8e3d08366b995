package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ppiankov/sdsvalidate/internal/catalog"
)

const (
	orgsHeader        = "sourcedId,name,type,parentSourcedId"
	usersHeader       = "sourcedId,username,givenName,familyName,password,activeDirectoryMatchId,email,phone,sms"
	rolesHeader       = "userSourcedId,orgSourcedId,role,sessionSourcedId,grade,isPrimary,roleStartDate,roleEndDate"
	rolesV21Header    = "sourcedId,userSourcedId,orgSourcedId,role,sessionSourcedId"
	classesHeader     = "sourcedId,orgSourcedId,title,sessionSourcedIds,courseSourcedId"
	enrollmentsHeader = "classSourcedId,userSourcedId,role"
	enrollV21Header   = "sourcedId,classSourcedId,userSourcedId,role"
	sessionsHeader    = "sourcedId,title,type,startDate,endDate,parentSourcedId"
	coursesHeader     = "sourcedId,orgSourcedId,title,courseCode,grades"
)

// validDataset is a complete roster with no findings
var validDataset = map[string]string{
	catalog.Orgs: orgsHeader + "\n" +
		"district1,North District,district,\n" +
		"school1,North High,school,district1\n",
	catalog.Users: usersHeader + "\n" +
		"t1,teacher1,Taro,Yamada,,AD001,taro@example.com,+819012345678,\n" +
		"s1,student1,Hanako,Sato,,AD002,hanako@example.com,,\n" +
		"s2,student2,Jiro,Suzuki,,,jiro@example.com,,\n",
	catalog.Roles: rolesHeader + "\n" +
		"t1,school1,teacher,term1,,true,2024-04-01,2025-03-31\n" +
		"s1,school1,student,term1,10,false,2024-04-01,\n" +
		"s2,school1,student,,11,,,\n",
	catalog.Classes: classesHeader + "\n" +
		"class1,school1,Math I,term1,course1\n" +
		"class2,school1,Homeroom,term1,\n",
	catalog.Enrollments: enrollmentsHeader + "\n" +
		"class1,t1,teacher\n" +
		"class1,s1,student\n" +
		"class2,s2,student\n",
	catalog.AcademicSessions: sessionsHeader + "\n" +
		"year1,2024 School Year,schoolYear,2024-04-01,2025-03-31,\n" +
		"term1,First Term,term,2024-04-01,2024-09-30,year1\n",
	catalog.Courses: coursesHeader + "\n" +
		"course1,school1,Mathematics,MATH1,10\n",
}

// writeDataset writes files into a fresh temp dir; overrides replace or add
// files, and an empty override removes the file.
func writeDataset(t *testing.T, overrides map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	files := make(map[string]string, len(validDataset))
	for k, v := range validDataset {
		files[k] = v
	}
	for k, v := range overrides {
		if v == "" {
			delete(files, k)
			continue
		}
		files[k] = v
	}

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}
