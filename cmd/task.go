package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/hospigo/fleetd/config"
	"github.com/hospigo/fleetd/core/model"
)

var (
	taskPickup      string
	taskDrop        string
	taskService     string
	taskPriority    string
	taskPatient     string
	taskRequestedBy string
	taskNotes       string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Submit a task to a running fleetd instance",
	RunE:  submitTask,
}

func init() {
	taskCmd.Flags().StringVar(&taskPickup, "pickup", "Pharmacy", "pickup location")
	taskCmd.Flags().StringVar(&taskDrop, "drop", "Ward A", "drop location")
	taskCmd.Flags().StringVar(&taskService, "service", "Medication Delivery", "service type")
	taskCmd.Flags().StringVar(&taskPriority, "priority", "Medium", "priority level")
	taskCmd.Flags().StringVar(&taskPatient, "patient", "", "patient id")
	taskCmd.Flags().StringVar(&taskRequestedBy, "requested-by", "cli", "requesting staff member")
	taskCmd.Flags().StringVar(&taskNotes, "notes", "", "special instructions")
	rootCmd.AddCommand(taskCmd)
}

func submitTask(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	req := model.TaskRequest{
		PickupLocation:      taskPickup,
		DropLocation:        taskDrop,
		ServiceType:         taskService,
		PriorityLevel:       taskPriority,
		PatientID:           taskPatient,
		RequestedBy:         taskRequestedBy,
		SpecialInstructions: taskNotes,
	}
	if err := req.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		apiURL(cfg)+"/api/tasks", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("submit task: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("task rejected (%d): %s", resp.StatusCode, apiErr.Error)
	}
	var created struct {
		Task model.Task `json:"task"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return err
	}
	fmt.Printf("task %s assigned to %s\n", created.Task.TaskID, created.Task.AssignedTo)
	return nil
}

func apiURL(cfg *config.Config) string {
	addr := cfg.HTTP.Addr
	if addr != "" && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
