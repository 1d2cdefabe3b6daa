package email

import "strings"

const subjectLeadAlert = "New Growth Score lead"

const subjectReportAlert = "Growth Score report generated"

// SequenceLength is the number of emails in the follow-up cadence.
const SequenceLength = 4

var followUpSubjects = map[int]string{
	1: "Ready to double your sales in the next 90 days?",
	2: "The #1 question about business growth",
	3: "{{firstName}}, let's decode your Growth Score",
	4: "Where will your business be 90 days from now?",
}

// FollowUpSubject returns the subject line for the given sequence position,
// with the lead's first name substituted where the template uses it.
func FollowUpSubject(emailNumber int, firstName string) string {
	subject, ok := followUpSubjects[emailNumber]
	if !ok {
		return ""
	}
	return strings.ReplaceAll(subject, "{{firstName}}", firstName)
}
