package server

import (
	"net/http"

	"github.com/jrsteele09/go-ems-server/admin"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/internal/utils"
)

type salaryPaidRequest struct {
	PaymentDate string `json:"payment_date"`
}

func pathID(r *http.Request) (int64, error) {
	id, err := utils.ParseID(r.PathValue("id"))
	if err != nil {
		return 0, errors.Validation("Invalid id")
	}
	return id, nil
}

func (s *Server) AdminStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.admin.DashboardStats(r.Context())
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"stats": stats})
	}
}

func (s *Server) AdminEmployeesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := s.admin.ListEmployees(r.Context())
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"employees": list(views)})
	}
}

func (s *Server) AdminSaveEmployeeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in admin.EmployeeInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		emp, err := s.admin.SaveEmployee(r.Context(), in)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"message": "Employee saved", "employee": emp})
	}
}

func (s *Server) AdminDeleteEmployeeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		if err := s.admin.DeleteEmployee(r.Context(), id); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"message": "Employee deactivated"})
	}
}

func (s *Server) AdminEmployeeAttendanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		q := r.URL.Query()
		records, err := s.admin.EmployeeAttendance(r.Context(), id, q.Get("from"), q.Get("to"))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"attendance": list(records)})
	}
}

func (s *Server) AdminAttendanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.admin.Attendance(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"attendance": list(records)})
	}
}

func (s *Server) AdminLeavesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requests, err := s.admin.Leaves(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"leaves": list(requests)})
	}
}

func (s *Server) AdminResolveLeaveHandler(approve bool) http.HandlerFunc {
	message := "Leave request rejected"
	if approve {
		message = "Leave request approved"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		leave, err := s.admin.ResolveLeave(r.Context(), id, approve, userFrom(r.Context()).ID)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"message": message, "leave": leave})
	}
}

func (s *Server) AdminCreateTaskHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in admin.TaskInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		task, err := s.admin.CreateTask(r.Context(), userFrom(r.Context()).ID, in)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"message": "Task created", "task": task})
	}
}

func (s *Server) AdminCreateSalaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in admin.SalaryInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		record, err := s.admin.CreateSalary(r.Context(), in)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"message": "Salary record created", "salary": record})
	}
}

func (s *Server) AdminSalaryPaidHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		var req salaryPaidRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		record, err := s.admin.MarkSalaryPaid(r.Context(), id, req.PaymentDate)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeSuccess(w, envelope{"message": "Salary marked as paid", "salary": record})
	}
}
