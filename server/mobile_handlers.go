package server

import (
	"net/http"

	"github.com/jrsteele09/go-ems-server/internal/utils"
	"github.com/jrsteele09/go-ems-server/mobile"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type checkInRequest struct {
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

type taskUpdateRequest struct {
	TaskID int64  `json:"task_id"`
	Status string `json:"status"`
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		result, err := s.mobile.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"token": result.Token, "user": result.User})
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.mobile.Logout(r.Context(), tokenFrom(r.Context())); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"message": "Logged out successfully"})
	}
}

func (s *Server) CheckInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkInRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		record, err := s.mobile.CheckIn(r.Context(), identityFrom(r.Context()), req.Location, req.Notes)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{
			"message":       "Checked in successfully",
			"check_in_time": record.CheckIn.In(s.location).Format(utils.TimestampLayout),
		})
	}
}

func (s *Server) CheckOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := s.mobile.CheckOut(r.Context(), identityFrom(r.Context()))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{
			"message":      "Checked out successfully",
			"hours_worked": utils.Value(record.HoursWorked),
		})
	}
}

func (s *Server) TasksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := s.mobile.Tasks(r.Context(), identityFrom(r.Context()))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"tasks": list(tasks)})
	}
}

func (s *Server) UpdateTaskHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req taskUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		if err := s.mobile.UpdateTaskStatus(r.Context(), identityFrom(r.Context()), req.TaskID, req.Status); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"message": "Task status updated"})
	}
}

func (s *Server) ApplyLeaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mobile.LeaveApplication
		if err := decodeJSON(r, &req); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		leave, err := s.mobile.ApplyLeave(r.Context(), identityFrom(r.Context()), req)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"message": "Leave application submitted", "leave": leave})
	}
}

func (s *Server) LeaveHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := s.mobile.LeaveHistory(r.Context(), identityFrom(r.Context()))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"leaves": list(history)})
	}
}

func (s *Server) SalaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		salary, err := s.mobile.Salary(r.Context(), identityFrom(r.Context()))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"salary": list(salary)})
	}
}

func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := s.mobile.Profile(r.Context(), identityFrom(r.Context()))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"profile": profile})
	}
}

// HealthHandler reports whether the store is reachable.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, envelope{"success": false, "status": "unavailable"})
			return
		}
		writeSuccess(w, envelope{"status": "ok"})
	}
}
