package mail

import (
	"fmt"
	"html/template"
)

type Template string

const (
	TemplateWelcomeUser   = Template("welcomeUser")
	TemplateLoginAccount  = Template("login_account")
	TemplateResetPassword = Template("reset_password")
	TemplateChangeEmail   = Template("changeEmail")
)

type mailTemplate struct {
	subject string
	body    *template.Template
}

const layout = `<div style="font-family:sans-serif">
<h2>Hi {{.Name}},</h2>
<p>%s</p>
<p style="font-size:28px;letter-spacing:6px"><b>{{.Code}}</b></p>
<p>The code expires in 10 minutes. If this was not you, ignore this mail.</p>
<p>ShareLearner</p>
</div>`

var templates = map[Template]mailTemplate{
	TemplateWelcomeUser: {
		subject: "Welcome to ShareLearner",
		body:    mustParse("welcome", "Thanks for joining ShareLearner. Use the code below to verify your account."),
	},
	TemplateLoginAccount: {
		subject: "Your ShareLearner login code",
		body:    mustParse("login", "Use the code below to finish signing in."),
	},
	TemplateResetPassword: {
		subject: "Reset your ShareLearner password",
		body:    mustParse("reset", "Use the code below to reset your password."),
	},
	TemplateChangeEmail: {
		subject: "Confirm your new email address",
		body:    mustParse("change-email", "Use the code below to confirm your new email address."),
	},
}

func mustParse(name, intro string) *template.Template {
	return template.Must(template.New(name).Parse(fmt.Sprintf(layout, template.HTMLEscapeString(intro))))
}
