package cmd

import (
	"encoding/json"

	"github.com/circa10a/appointment-reminder/internal/reminder"
	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	outputFormat string
	useColor     bool
)

// formatOutput handles conversion and writing to the command's designated output
func formatOutput(cmd *cobra.Command, data interface{}) {
	color.NoColor = !useColor

	var out string

	switch outputFormat {
	case "yaml":
		b, _ := yaml.Marshal(data)
		if useColor {
			out = color.CyanString(string(b))
		} else {
			out = string(b)
		}

	case "json":
		fallthrough
	default:
		if useColor {
			b, _ := prettyjson.Marshal(data)
			out = string(b)
		} else {
			b, _ := json.MarshalIndent(data, "", "  ")
			out = string(b)
		}
	}

	cmd.Println(out)
}

var appointmentCmd = &cobra.Command{
	Use:     "appointment",
	Aliases: []string{"appointments"},
	Short:   "Manage appointments",
}

var addAppointmentCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an appointment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		patientName, _ := cmd.Flags().GetString("patient-name")
		patientPhone, _ := cmd.Flags().GetString("patient-phone")
		doctorName, _ := cmd.Flags().GetString("doctor-name")
		doctorPhone, _ := cmd.Flags().GetString("doctor-phone")
		apptDate, _ := cmd.Flags().GetString("date")
		apptTime, _ := cmd.Flags().GetString("time")

		svc, err := newService()
		if err != nil {
			return err
		}

		err = svc.Init()
		if err != nil {
			return err
		}

		id, err := svc.AddAppointment(reminder.NewAppointment{
			PatientName:  patientName,
			PatientPhone: patientPhone,
			DoctorName:   doctorName,
			DoctorPhone:  doctorPhone,
			Date:         apptDate,
			Time:         apptTime,
		})
		if err != nil {
			return err
		}

		formatOutput(cmd, map[string]int64{"id": id})
		return nil
	},
}

var listAppointmentsCmd = &cobra.Command{
	Use:   "list",
	Short: "List appointments, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		svc, err := newService()
		if err != nil {
			return err
		}

		err = svc.Init()
		if err != nil {
			return err
		}

		appointments, err := svc.Appointments(limit)
		if err != nil {
			return err
		}

		formatOutput(cmd, appointments)
		return nil
	},
}

func init() {
	appointmentCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "Output format (json, yaml)")
	appointmentCmd.PersistentFlags().BoolVar(&useColor, "color", true, "Enable colorized output")

	addAppointmentCmd.Flags().String("patient-name", "", "Patient name")
	addAppointmentCmd.Flags().String("patient-phone", "", "Patient phone number, E.164 (e.g. +254797971425)")
	addAppointmentCmd.Flags().String("doctor-name", "", "Doctor name")
	addAppointmentCmd.Flags().String("doctor-phone", "", "Doctor phone number, E.164")
	addAppointmentCmd.Flags().String("date", "", "Appointment date (YYYY-MM-DD)")
	addAppointmentCmd.Flags().String("time", "", "Appointment time (HH:MM)")
	for _, name := range []string{"patient-name", "patient-phone", "doctor-name", "doctor-phone", "date", "time"} {
		_ = addAppointmentCmd.MarkFlagRequired(name)
	}

	listAppointmentsCmd.Flags().IntP("limit", "n", -1, "Maximum number of appointments to list (-1 for all)")

	appointmentCmd.AddCommand(addAppointmentCmd, listAppointmentsCmd)
	rootCmd.AddCommand(appointmentCmd)
}
