package mail

import (
	"bytes"
	"html/template"

	"tendorai/internal/usecase"
)

// DigestRenderer renders the weekly digest as table-based inline-CSS HTML,
// which is the only layout older email clients render consistently.
type DigestRenderer struct {
	tmpl *template.Template
}

func NewDigestRenderer() *DigestRenderer {
	return &DigestRenderer{tmpl: template.Must(template.New("digest").Parse(digestHTML))}
}

func (r *DigestRenderer) Render(data usecase.DigestEmailData) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const digestHTML = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;">
<table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="background-color:#f4f5f7;padding:24px 0;">
<tr><td align="center">
<table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;overflow:hidden;">
<tr><td style="background-color:#1a1f36;padding:24px 32px;">
  <span style="color:#ffffff;font-size:20px;font-weight:bold;">TendorAI</span>
  <span style="color:#9aa2b8;font-size:13px;float:right;padding-top:6px;">Week of {{.WeekOf}}</span>
</td></tr>
<tr><td style="padding:32px;">
  <p style="font-size:16px;color:#1a1f36;margin:0 0 16px;">Hi {{.VendorName}},</p>
  <p style="font-size:14px;color:#4a5268;margin:0 0 24px;">Here is how your business showed up in AI search this week.</p>
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="margin-bottom:24px;">
  <tr>
    <td width="33%" align="center" style="padding:16px;background-color:#f8f9fb;border-radius:6px;">
      <div style="font-size:28px;font-weight:bold;color:#1a1f36;">{{.Score}}</div>
      <div style="font-size:12px;color:#6b7385;">Visibility score ({{.ScoreLabel}})</div>
    </td>
    <td width="8">&nbsp;</td>
    <td width="33%" align="center" style="padding:16px;background-color:#f8f9fb;border-radius:6px;">
      <div style="font-size:28px;font-weight:bold;color:#1a1f36;">{{.MentionsThisWeek}}</div>
      <div style="font-size:12px;color:#6b7385;">AI mentions this week</div>
    </td>
    <td width="8">&nbsp;</td>
    <td width="33%" align="center" style="padding:16px;background-color:#f8f9fb;border-radius:6px;">
      <div style="font-size:28px;font-weight:bold;color:#1a1f36;">{{.CompetitorMentions}}</div>
      <div style="font-size:12px;color:#6b7385;">Competitors mentioned</div>
    </td>
  </tr>
  </table>
  {{if .Recommendations}}
  <p style="font-size:14px;font-weight:bold;color:#1a1f36;margin:0 0 12px;">Quick wins to raise your score</p>
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="margin-bottom:24px;">
  {{range .Recommendations}}
  <tr><td style="padding:10px 14px;border-left:3px solid #3b6ef6;background-color:#f8f9fb;font-size:13px;color:#4a5268;">
    {{.Action}} <span style="color:#3b6ef6;font-weight:bold;">+{{.Points}} pts</span>
  </td></tr>
  <tr><td height="8"></td></tr>
  {{end}}
  </table>
  {{end}}
  <table role="presentation" cellpadding="0" cellspacing="0" style="margin:0 auto 8px;">
  <tr><td align="center" style="background-color:#3b6ef6;border-radius:6px;">
    <a href="{{.DashboardURL}}" style="display:inline-block;padding:12px 28px;color:#ffffff;font-size:14px;font-weight:bold;text-decoration:none;">View full report</a>
  </td></tr>
  </table>
  {{if ne .TierName "Verified"}}
  <p style="font-size:12px;color:#6b7385;text-align:center;margin:16px 0 0;">
    On the {{.TierName}} plan. <a href="{{.UpgradeURL}}" style="color:#3b6ef6;">Upgrade</a> for deeper AI visibility tracking.
  </p>
  {{end}}
</td></tr>
<tr><td style="padding:20px 32px;background-color:#f8f9fb;border-top:1px solid #e6e8ef;">
  <p style="font-size:11px;color:#9aa2b8;margin:0;text-align:center;">
    You receive this because your company is listed on TendorAI.<br>
    <a href="{{.UnsubscribeURL}}" style="color:#9aa2b8;">Unsubscribe from weekly reports</a>
  </p>
</td></tr>
</table>
</td></tr>
</table>
</body>
</html>`
