package cmd

import (
	"fmt"
	"strings"

	"github.com/circa10a/appointment-reminder/internal/reminder"
	"github.com/circa10a/appointment-reminder/internal/reminder/database"
	"github.com/circa10a/appointment-reminder/internal/reminder/notifier"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Constants for Viper keys and Flag names
const (
	accountSIDKey      = "account-sid"
	authTokenKey       = "auth-token"
	cronKey            = "cron"
	databaseKey        = "database"
	encryptPhonesKey   = "encrypt-phones"
	logFormatKey       = "log-format"
	logLevelKey        = "log-level"
	metricsAddrKey     = "metrics-addr"
	notifierURLKey     = "notifier-url"
	phoneNumberKey     = "phone-number"
	providerKey        = "provider"
	requireDeliveryKey = "require-delivery"
	timezoneKey        = "timezone"
)

var configFlags = []flagDef{
	{Name: accountSIDKey, Type: "string", Default: "", Usage: "Twilio account SID.", ViperKey: accountSIDKey, Env: "TWILIO_ACCOUNT_SID"},
	{Name: authTokenKey, Type: "string", Default: "", Usage: "Twilio auth token.", ViperKey: authTokenKey, Env: "TWILIO_AUTH_TOKEN"},
	{Name: cronKey, Type: "string", Default: reminder.DefaultCron, Usage: "Cron expression used by the schedule command.", ViperKey: cronKey},
	{Name: databaseKey, Shorthand: "d", Type: "string", Default: database.DefaultPath, Usage: "Path to the SQLite database file.", ViperKey: databaseKey},
	{Name: encryptPhonesKey, Type: "bool", Default: false, Usage: "Encrypt phone numbers at rest. The key is stored next to the database file.", ViperKey: encryptPhonesKey},
	{Name: logFormatKey, Shorthand: "f", Type: "string", Default: "text", Usage: "Logging format. Supported values are 'text' and 'json'.", ViperKey: logFormatKey},
	{Name: logLevelKey, Shorthand: "l", Type: "string", Default: "info", Usage: "Logging level.", ViperKey: logLevelKey},
	{Name: metricsAddrKey, Type: "string", Default: "", Usage: "Listen address for /health and /metrics while the schedule command runs, e.g. :9090. Disabled when empty.", ViperKey: metricsAddrKey},
	{Name: notifierURLKey, Type: "string", Default: notifier.DefaultShoutrrrURL, Usage: "Shoutrrr service URL used by the shoutrrr provider. {to} is replaced by the recipient.", ViperKey: notifierURLKey},
	{Name: phoneNumberKey, Type: "string", Default: "", Usage: "Sender phone number reminders are sent from.", ViperKey: phoneNumberKey, Env: "TWILIO_PHONE_NUMBER"},
	{Name: providerKey, Shorthand: "p", Type: "string", Default: notifier.ProviderTwilio, Usage: fmt.Sprintf("Message provider. Supported values are %v.", notifier.Providers), ViperKey: providerKey},
	{Name: requireDeliveryKey, Type: "bool", Default: false, Usage: "Only mark a reminder as sent when both messages were accepted.", ViperKey: requireDeliveryKey},
	{Name: timezoneKey, Type: "string", Default: "Local", Usage: "Timezone used to compute tomorrow's date and evaluate the cron expression.", ViperKey: timezoneKey},
}

// bindConfig binds the config flags and their environment variables to viper.
func bindConfig(flags *pflag.FlagSet) {
	viper.SetEnvPrefix(strings.ToUpper(envVarPrefix))
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for _, d := range configFlags {
		_ = viper.BindPFlag(d.ViperKey, flags.Lookup(d.Name))

		env := envName(d)
		if d.Env != "" {
			_ = viper.BindEnv(d.ViperKey, d.Env)
		}

		f := flags.Lookup(d.Name)
		if f != nil && !strings.Contains(f.Usage, "env:") {
			f.Usage = fmt.Sprintf("%s (env: %s)", f.Usage, env)
		}
	}
}

// envName returns the environment variable that configures d.
func envName(d flagDef) string {
	if d.Env != "" {
		return d.Env
	}

	return strings.ToUpper(envVarPrefix) + "_" + strings.ToUpper(strings.ReplaceAll(d.Name, "-", "_"))
}

// configFromViper builds the service configuration from flags, env and config file.
func configFromViper() *reminder.Config {
	return &reminder.Config{
		AccountSID:      viper.GetString(accountSIDKey),
		AuthToken:       viper.GetString(authTokenKey),
		Cron:            viper.GetString(cronKey),
		DatabasePath:    viper.GetString(databaseKey),
		EncryptPhones:   viper.GetBool(encryptPhonesKey),
		FromNumber:      viper.GetString(phoneNumberKey),
		LogFormat:       viper.GetString(logFormatKey),
		LogLevel:        viper.GetString(logLevelKey),
		MetricsAddr:     viper.GetString(metricsAddrKey),
		NotifierURL:     viper.GetString(notifierURLKey),
		Provider:        viper.GetString(providerKey),
		RequireDelivery: viper.GetBool(requireDeliveryKey),
		Timezone:        viper.GetString(timezoneKey),
	}
}

// newService builds the reminder service from the current configuration.
func newService() (*reminder.Service, error) {
	return reminder.New(configFromViper())
}
